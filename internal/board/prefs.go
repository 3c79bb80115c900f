package board

import (
	"errors"

	"CollabBoard/internal/draw"
	"CollabBoard/internal/prefs"
)

// LoadPrefs applies the preferences found in store. Missing keys keep
// their current value.
func (b *Board) LoadPrefs(store prefs.Store) error {
	var errs []error

	var opts draw.Options
	if ok, err := store.Get(prefs.KeyDrawOptions, &opts); err != nil {
		errs = append(errs, err)
	} else if ok {
		b.SetDrawOptions(opts)
	}

	var magnet float64
	if ok, err := store.Get(prefs.KeyPointerMagnet, &magnet); err != nil {
		errs = append(errs, err)
	} else if ok {
		b.SetMagnet(magnet)
	}

	var mode draw.Mode
	if ok, err := store.Get(prefs.KeyDrawMode, &mode); err != nil {
		errs = append(errs, err)
	} else if ok && mode.Valid() {
		b.wb.SetDrawMode(mode)
	}

	var bg draw.Background
	if ok, err := store.Get(prefs.KeyBackground, &bg); err != nil {
		errs = append(errs, err)
	} else if ok {
		b.wb.SetBackground(bg)
	}

	return errors.Join(errs...)
}

// SavePrefs writes the current preferences to store.
func (b *Board) SavePrefs(store prefs.Store) error {
	return errors.Join(
		store.Set(prefs.KeyDrawOptions, b.drawOptions),
		store.Set(prefs.KeyPointerMagnet, b.opts.Magnet),
		store.Set(prefs.KeyDrawMode, b.wb.DrawMode()),
		store.Set(prefs.KeyBackground, b.wb.Background()),
	)
}
