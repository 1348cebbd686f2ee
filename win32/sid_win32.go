// +build windows

package win32

import (
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	procLookupAccountNameW = advapi32DLL.NewProc("LookupAccountNameW")
	procLookupAccountSidW  = advapi32DLL.NewProc("LookupAccountSidW")
)

// BOOL LookupAccountNameW(
//   LPCWSTR       lpSystemName,
//   LPCWSTR       lpAccountName,
//   PSID          Sid,
//   LPDWORD       cbSid,
//   LPWSTR        ReferencedDomainName,
//   LPDWORD       cchReferencedDomainName,
//   PSID_NAME_USE peUse
// );
// https://docs.microsoft.com/en-us/windows/desktop/api/winbase/nf-winbase-lookupaccountnamew
func lookupAccountName(system *uint16, account *uint16, sid *byte, cbSid *uint32, domain *uint16, cchDomain *uint32) error {
	var use uint32
	ret, _, errno := procLookupAccountNameW.Call(
		uintptr(unsafe.Pointer(system)),
		uintptr(unsafe.Pointer(account)),
		uintptr(unsafe.Pointer(sid)),
		uintptr(unsafe.Pointer(cbSid)),
		uintptr(unsafe.Pointer(domain)),
		uintptr(unsafe.Pointer(cchDomain)),
		uintptr(unsafe.Pointer(&use)),
	)
	return testReturnCodeTrue(ret, errno)
}

// BOOL LookupAccountSidW(
//   LPCWSTR       lpSystemName,
//   PSID          Sid,
//   LPWSTR        Name,
//   LPDWORD       cchName,
//   LPWSTR        ReferencedDomainName,
//   LPDWORD       cchReferencedDomainName,
//   PSID_NAME_USE peUse
// );
// https://docs.microsoft.com/en-us/windows/desktop/api/winbase/nf-winbase-lookupaccountsidw
func lookupAccountSid(system *uint16, sid *windows.SID, name *uint16, cchName *uint32, domain *uint16, cchDomain *uint32) error {
	var use uint32
	ret, _, errno := procLookupAccountSidW.Call(
		uintptr(unsafe.Pointer(system)),
		uintptr(unsafe.Pointer(sid)),
		uintptr(unsafe.Pointer(name)),
		uintptr(unsafe.Pointer(cchName)),
		uintptr(unsafe.Pointer(domain)),
		uintptr(unsafe.Pointer(cchDomain)),
		uintptr(unsafe.Pointer(&use)),
	)
	return testReturnCodeTrue(ret, errno)
}
