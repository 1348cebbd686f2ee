// +build windows

package win32

import (
	"syscall"
	"unsafe"
)

var (
	procGetTokenInformation = advapi32DLL.NewProc("GetTokenInformation")
)

// BOOL GetTokenInformation(
//   HANDLE                  TokenHandle,
//   TOKEN_INFORMATION_CLASS TokenInformationClass,
//   LPVOID                  TokenInformation,
//   DWORD                   TokenInformationLength,
//   PDWORD                  ReturnLength
// );
// https://docs.microsoft.com/en-us/windows/desktop/api/securitybaseapi/nf-securitybaseapi-gettokeninformation
//
// The returned length is the size the information requires, which is also
// reported when buf is too small.
func getTokenInformation(hToken syscall.Token, tokenInformationClass uint32, buf []byte) (uint32, error) {
	var n uint32
	ret, _, errno := procGetTokenInformation.Call(
		uintptr(hToken),
		uintptr(tokenInformationClass),
		uintptr(unsafe.Pointer(bytePtr(buf))),
		uintptr(len(buf)),
		uintptr(unsafe.Pointer(&n)),
	)
	if err := testReturnCodeNonZero(ret, errno); err != nil {
		return n, err
	}
	return n, nil
}
