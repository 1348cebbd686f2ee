package sid

// https://support.microsoft.com/en-us/help/243330/well-known-security-identifiers-in-windows-operating-systems

const (
	// Everyone is a group that includes all users
	Everyone = "S-1-1-0"

	// LocalSystem is the account used by the operating system
	LocalSystem = "S-1-5-18"

	// LocalService is a service account with minimum privileges on the local computer
	LocalService = "S-1-5-19"

	// NetworkService is a service account that presents the computer's credentials to remote servers
	NetworkService = "S-1-5-20"

	// Administrators is a built-in group. After the initial installation of the operating system, the only member of the group is the Administrator account.
	Administrators = "S-1-5-32-544"

	// Users is a built-in group. After the initial installation of the operating system, the only member is the Authenticated Users group.
	Users = "S-1-5-32-545"

	// Guests is a built-in group. By default, the only member is the Guest account.
	Guests = "S-1-5-32-546"

	// BackupOperators is a built-in group. By default, the group has no members.
	BackupOperators = "S-1-5-32-551"

	// AllServices is a group that includes all service processes that are configured on the system.
	AllServices = "S-1-5-80-0"

	// NTVirtualMachines is a built-in group created when the Hyper-V role is installed.
	NTVirtualMachines = "S-1-5-83-0"

	// SystemMandatoryLevel is a system integrity level.
	SystemMandatoryLevel = "S-1-16-16384"
)
