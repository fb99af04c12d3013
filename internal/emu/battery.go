package emu

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// BatteryPath returns the save file used for a ROM: the ROM path with its
// extension replaced by .sav.
func BatteryPath(romPath string) string {
	return strings.TrimSuffix(romPath, filepath.Ext(romPath)) + ".sav"
}

// LoadBatteryFile restores cartridge RAM from path. A missing file is not an
// error; it reports whether RAM was restored.
func (m *Machine) LoadBatteryFile(path string) (bool, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return m.LoadBattery(data), nil
}

// SaveBatteryFile writes cartridge RAM to path if the cartridge has a battery.
func (m *Machine) SaveBatteryFile(path string) (bool, error) {
	data, ok := m.SaveBattery()
	if !ok {
		return false, nil
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return false, err
	}
	return true, nil
}
