// +build windows

package win32

import (
	"syscall"
	"unsafe"
)

var (
	procNetUserGetInfo   = netapi32DLL.NewProc("NetUserGetInfo")
	procNetApiBufferFree = netapi32DLL.NewProc("NetApiBufferFree")
)

// typedef struct _USER_INFO_3 {
//   LPWSTR usri3_name;
//   LPWSTR usri3_password;
//   DWORD  usri3_password_age;
//   DWORD  usri3_priv;
//   LPWSTR usri3_home_dir;
//   LPWSTR usri3_comment;
//   DWORD  usri3_flags;
//   LPWSTR usri3_script_path;
//   DWORD  usri3_auth_flags;
//   LPWSTR usri3_full_name;
//   LPWSTR usri3_usr_comment;
//   LPWSTR usri3_parms;
//   LPWSTR usri3_workstations;
//   DWORD  usri3_last_logon;
//   DWORD  usri3_last_logoff;
//   DWORD  usri3_acct_expires;
//   DWORD  usri3_max_storage;
//   DWORD  usri3_units_per_week;
//   PBYTE  usri3_logon_hours;
//   DWORD  usri3_bad_pw_count;
//   DWORD  usri3_num_logons;
//   LPWSTR usri3_logon_server;
//   DWORD  usri3_country_code;
//   DWORD  usri3_code_page;
//   DWORD  usri3_user_id;
//   DWORD  usri3_primary_group_id;
//   LPWSTR usri3_profile;
//   LPWSTR usri3_home_dir_drive;
//   DWORD  usri3_password_expired;
// } USER_INFO_3, *PUSER_INFO_3, *LPUSER_INFO_3;
type _USER_INFO_3 struct {
	usri3_name             *uint16
	usri3_password         *uint16
	usri3_password_age     DWORD
	usri3_priv             DWORD
	usri3_home_dir         *uint16
	usri3_comment          *uint16
	usri3_flags            DWORD
	usri3_script_path      *uint16
	usri3_auth_flags       DWORD
	usri3_full_name        *uint16
	usri3_usr_comment      *uint16
	usri3_parms            *uint16
	usri3_workstations     *uint16
	usri3_last_logon       DWORD
	usri3_last_logoff      DWORD
	usri3_acct_expires     DWORD
	usri3_max_storage      DWORD
	usri3_units_per_week   DWORD
	usri3_logon_hours      *BYTE
	usri3_bad_pw_count     DWORD
	usri3_num_logons       DWORD
	usri3_logon_server     *uint16
	usri3_country_code     DWORD
	usri3_code_page        DWORD
	usri3_user_id          DWORD
	usri3_primary_group_id DWORD
	usri3_profile          *uint16
	usri3_home_dir_drive   *uint16
	usri3_password_expired DWORD
}

// NET_API_STATUS NET_API_FUNCTION NetUserGetInfo(
//   LPCWSTR servername,
//   LPCWSTR username,
//   DWORD   level,
//   LPBYTE  *bufptr
// );
// https://docs.microsoft.com/en-us/windows/desktop/api/lmaccess/nf-lmaccess-netusergetinfo
//
// The returned buffer must be released with netApiBufferFree whenever it is non-nil,
// regardless of the status.
func netUserGetInfo3(server *uint16, user *uint16) (*_USER_INFO_3, uintptr) {
	var buf *_USER_INFO_3
	status, _, _ := procNetUserGetInfo.Call(
		uintptr(unsafe.Pointer(server)),
		uintptr(unsafe.Pointer(user)),
		uintptr(3),
		uintptr(unsafe.Pointer(&buf)),
	)
	return buf, status
}

// NET_API_STATUS NET_API_FUNCTION NetApiBufferFree(
//   _Frees_ptr_opt_ LPVOID Buffer
// );
// https://docs.microsoft.com/en-us/windows/desktop/api/lmapibuf/nf-lmapibuf-netapibufferfree
func netApiBufferFree(info *_USER_INFO_3) error {
	status, _, _ := procNetApiBufferFree.Call(uintptr(unsafe.Pointer(info)))
	if status != NERR_Success {
		return errnoToError(syscall.Errno(status))
	}
	return nil
}
