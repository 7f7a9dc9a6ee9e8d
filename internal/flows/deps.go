package flows

// Deps groups flow dependency sets. Root engine builds this once and delegates
// request methods to the matching flow implementation.
type Deps struct {
	Login    LoginDeps
	Verify   VerifyDeps
	Refresh  RefreshDeps
	Logout   LogoutDeps
	Register RegisterDeps
}

// UserRecord is the flow-local view of a credential store row.
type UserRecord struct {
	UserID       string
	FullName     string
	Email        string
	Role         string
	PasswordHash string
}
