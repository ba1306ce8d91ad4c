package dto

// CredentialsForm is the login and registration form shared by the CLI and
// the web console.
type CredentialsForm struct {
	Username string `form:"username" validate:"required"`
	Password string `form:"password" validate:"required"`
}
