//go:build windows

package volumes

import "golang.org/x/sys/windows"

func list() ([]Volume, error) {
	mask, err := windows.GetLogicalDrives()
	if err != nil {
		return nil, err
	}
	return driveLetters(mask), nil
}
