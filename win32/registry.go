// +build windows

package win32

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/sys/windows/registry"
)

// RegistryKey interfaces with the Windows Registry API
type RegistryKey struct {
	str  string
	hKey HKEY
}

// RegistryKeyPermissions selects the desired permissions
type RegistryKeyPermissions struct {
	Read bool
}

// OpenRegistryKey opens the registry key with the desired permissions
// The caller is responsible for closing it with the Close function
func OpenRegistryKey(rootKey string, subKey string, perms RegistryKeyPermissions) (*RegistryKey, error) {
	hRootKey, ok := rootKeyHandles[strings.ToUpper(rootKey)]
	if !ok {
		return nil, errors.Errorf("win32: Root key name '%s' not valid", rootKey)
	}
	var access uint32
	if perms.Read {
		access |= _KEY_READ
	}
	hKey, err := regOpenKeyExW(hRootKey, subKey, access)
	if err != nil {
		return nil, errors.Wrapf(err, "win32: RegOpenKeyExW(%s) failed", subKey)
	}
	return &RegistryKey{hKey: hKey, str: fmt.Sprintf("%s\\%s", rootKeyNames[hRootKey], subKey)}, nil
}

// Close releases the registry key resource
func (k *RegistryKey) Close() error {
	if err := regCloseKey(k.hKey); err != nil {
		return errors.Wrapf(err, "win32: regCloseKey failed")
	}
	return nil
}

// ReadValue reads a raw value and its type out of the registry key
// It will return an error if the value doesn't exist
func (k *RegistryKey) ReadValue(name string) ([]byte, uint32, error) {
	return readRegValue(k.hKey, name)
}

// String prints the registry key path
func (k *RegistryKey) String() string {
	return k.str
}

// ReadStringValue reads a string value out of the registry key.
// REG_EXPAND_SZ values have their environment variables expanded.
func (k *RegistryKey) ReadStringValue(name string) (string, error) {
	kv, kt, err := k.ReadValue(name)
	if err != nil {
		return "", err
	}
	switch kt {
	case _REG_SZ:
		return UTF16BytesToString(kv), nil
	case _REG_EXPAND_SZ:
		s, err := registry.ExpandString(UTF16BytesToString(kv))
		if err != nil {
			return "", errors.Wrapf(err, "win32: unable to expand %s\\%s", k, name)
		}
		return s, nil
	}
	return "", errors.Errorf("win32: %s\\%s is not a string", k, name)
}

const profileListKey = `SOFTWARE\Microsoft\Windows NT\CurrentVersion\ProfileList`

// ProfileList finds user profile directories under the ProfileList registry key.
// It implements identity.Profiles.
type ProfileList struct{}

// ProfileDir returns the expanded ProfileImagePath of the SID
func (ProfileList) ProfileDir(sidString string) (string, error) {
	key, err := OpenRegistryKey("HKLM", profileListKey+`\`+sidString, RegistryKeyPermissions{Read: true})
	if err != nil {
		return "", err
	}
	defer CloseLogErr(key, "win32: unable to close profile list key")
	return key.ReadStringValue("ProfileImagePath")
}
