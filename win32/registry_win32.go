// +build windows

package win32

import (
	"syscall"
	"unsafe"
)

var (
	procRegOpenKeyExW    = advapi32DLL.NewProc("RegOpenKeyExW")
	procRegCloseKey      = advapi32DLL.NewProc("RegCloseKey")
	procRegQueryValueExW = advapi32DLL.NewProc("RegQueryValueExW")
)

// LSTATUS RegCloseKey(
//   HKEY hKey
// );
func regCloseKey(hKey HKEY) error {
	ret, _, _ := procRegCloseKey.Call(uintptr(hKey))
	if ret != ERROR_SUCCESS {
		return syscall.Errno(ret)
	}
	return nil
}

// LSTATUS RegQueryValueExW(
//   HKEY                              hKey,
//   LPCWSTR                           lpValueName,
//   LPDWORD                           lpReserved,
//   LPDWORD                           lpType,
//   __out_data_source(REGISTRY)LPBYTE lpData,
//   LPDWORD                           lpcbData
// );
//
// The status is the return value; the registry functions do not set the last error.
func readRegValue(hKey HKEY, valueName string) ([]byte, uint32, error) {
	var cbData = uint32(4)
	lpValueName := Text(valueName).WChars()
	var Type uint32
	for {
		var Data = make([]byte, cbData)
		ret, _, _ := procRegQueryValueExW.Call(
			uintptr(hKey),
			uintptr(unsafe.Pointer(lpValueName)),
			uintptr(0),
			uintptr(unsafe.Pointer(&Type)),
			uintptr(unsafe.Pointer(&Data[0])),
			uintptr(unsafe.Pointer(&cbData)),
		)
		if ret == ERROR_MORE_DATA {
			continue
		}
		if ret != ERROR_SUCCESS {
			return nil, 0, syscall.Errno(ret)
		}
		return Data[0:cbData], Type, nil
	}
}

// LSTATUS RegOpenKeyExW(
//   HKEY    hKey,
//   LPCWSTR lpSubKey,
//   DWORD   ulOptions,
//   REGSAM  samDesired,
//   PHKEY   phkResult
// );
// https://docs.microsoft.com/en-us/windows/desktop/api/winreg/nf-winreg-regopenkeyexw
func regOpenKeyExW(hRootKey HKEY, subKey string, perms uint32) (HKEY, error) {
	sk, err := syscall.UTF16FromString(subKey)
	if err != nil {
		return 0, err
	}
	var hKeyRes HKEY
	ret, _, _ := procRegOpenKeyExW.Call(
		uintptr(hRootKey),
		uintptr(unsafe.Pointer(&sk[0])),
		uintptr(0),
		uintptr(perms),
		uintptr(unsafe.Pointer(&hKeyRes)),
	)
	if ret != ERROR_SUCCESS {
		return 0, syscall.Errno(ret)
	}
	return hKeyRes, nil
}

type HKEY uintptr

const (
	_HKEY_CLASSES_ROOT   HKEY = 0x80000000
	_HKEY_CURRENT_USER   HKEY = 0x80000001
	_HKEY_LOCAL_MACHINE  HKEY = 0x80000002
	_HKEY_USERS          HKEY = 0x80000003
	_HKEY_CURRENT_CONFIG HKEY = 0x80000005
)

var rootKeyNames = map[HKEY]string{
	_HKEY_CLASSES_ROOT:   "HKEY_CLASSES_ROOT",
	_HKEY_CURRENT_USER:   "HKEY_CURRENT_USER",
	_HKEY_LOCAL_MACHINE:  "HKEY_LOCAL_MACHINE",
	_HKEY_USERS:          "HKEY_USERS",
	_HKEY_CURRENT_CONFIG: "HKEY_CURRENT_CONFIG",
}

var rootKeyHandles = map[string]HKEY{
	// Long Names
	"HKEY_CLASSES_ROOT":   _HKEY_CLASSES_ROOT,
	"HKEY_CURRENT_USER":   _HKEY_CURRENT_USER,
	"HKEY_LOCAL_MACHINE":  _HKEY_LOCAL_MACHINE,
	"HKEY_USERS":          _HKEY_USERS,
	"HKEY_CURRENT_CONFIG": _HKEY_CURRENT_CONFIG,

	// Short Names
	"HKCR": _HKEY_CLASSES_ROOT,
	"HKCU": _HKEY_CURRENT_USER,
	"HKLM": _HKEY_LOCAL_MACHINE,
	"HKU":  _HKEY_USERS,
	"HKCC": _HKEY_CURRENT_CONFIG,
}

// https://docs.microsoft.com/en-us/windows/desktop/SysInfo/registry-key-security-and-access-rights
const (
	_KEY_ENUMERATE_SUB_KEYS uint32 = 0x0008
	_KEY_NOTIFY             uint32 = 0x0010
	_KEY_QUERY_VALUE        uint32 = 0x0001
	_KEY_READ               uint32 = _STANDARD_RIGHTS_READ | _KEY_QUERY_VALUE | _KEY_ENUMERATE_SUB_KEYS | _KEY_NOTIFY
)

const (
	_REG_SZ        uint32 = 1 // Unicode nul terminated string
	_REG_EXPAND_SZ uint32 = 2 // Unicode nul terminated string
)
