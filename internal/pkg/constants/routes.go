package constants

// Page routes the handlers redirect to
const (
	HomeRoute    = "/"
	LoginRoute   = "/login"
	SignupRoute  = "/signup"
	AccountRoute = "/account"
)
