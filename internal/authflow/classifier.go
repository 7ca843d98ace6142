package authflow

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jrschumacher/appauth/internal/apperr"
	"github.com/jrschumacher/appauth/internal/logger"
	"github.com/jrschumacher/appauth/pkg/appauth"
)

func isUserCancellation(err error) bool {
	var e *appauth.Error
	return errors.As(err, &e) &&
		e.Domain == appauth.GeneralErrorDomain &&
		e.Code == appauth.ErrorCodeUserCanceledAuthorizationFlow
}

func isRefreshTokenExpired(err error) bool {
	var e *appauth.Error
	return errors.As(err, &e) &&
		e.Domain == appauth.OAuthTokenErrorDomain &&
		e.Code == appauth.ErrorCodeOAuthInvalidGrant
}

// newAuthorizationError turns a raw provider failure into an ApplicationError
// and logs it. The description joins the library's (domain / code) tag with
// the error message.
func newAuthorizationError(title string, err error) *apperr.ApplicationError {
	var parts []string
	if err == nil {
		parts = append(parts, "Unknown Error")
	} else {
		var e *appauth.Error
		if errors.As(err, &e) && appauth.IsLibraryDomain(e.Domain) {
			parts = append(parts, fmt.Sprintf("(%s / %d)", e.Domain, e.Code))
		}
		if msg := err.Error(); msg != "" {
			parts = append(parts, msg)
		}
	}

	appErr := apperr.New(title, strings.Join(parts, " : "))
	logger.Error(appErr.Title + " : " + appErr.Description)
	return appErr
}
