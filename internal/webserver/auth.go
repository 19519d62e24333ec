package webserver

import (
	"strings"

	"github.com/kasirpos/kasir/internal/apperr"
	"github.com/kasirpos/kasir/internal/identity"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
)

const principalKey = "kasir.principal"

// Auth verifies "Authorization: Bearer <token>" with the identity provider on
// every request and stores the principal in the context.
func Auth(idp identity.Provider) echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		ContextKey:  principalKey,
		TokenLookup: "header:" + echo.HeaderAuthorization + ":Bearer ",
		ParseTokenFunc: func(c echo.Context, auth string) (interface{}, error) {
			return idp.Verify(c.Request().Context(), auth)
		},
		ErrorHandler: func(c echo.Context, err error) error {
			if strings.TrimSpace(c.Request().Header.Get(echo.HeaderAuthorization)) == "" {
				return apperr.Authentication(apperr.CodeAuthRequired, "Unauthorized: No token provided")
			}
			return apperr.Authentication(apperr.CodeInvalidToken, "Unauthorized: Invalid token")
		},
	})
}

// PrincipalID returns the verified user id of the request. Empty outside
// protected routes.
func PrincipalID(c echo.Context) string {
	p, ok := c.Get(principalKey).(*identity.Principal)
	if !ok || p == nil {
		return ""
	}
	return p.UserID
}
