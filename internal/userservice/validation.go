package userservice

import (
	"net/url"
	"regexp"

	"github.com/sushihentaime/blogverse/internal/common"
)

var (
	EmailRX = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
)

func validateName(v *common.Validator, name string) {
	v.Check(name != "", "name", "must be provided")
	v.Check(v.CheckStringLength(name, 1, 50), "name", "must not be more than 50 characters long")
}

func validateEmail(v *common.Validator, email string) {
	v.Check(email != "", "email", "must be provided")
	v.Check(EmailRX.MatchString(email), "email", "must be a valid email address")
}

func validatePassword(v *common.Validator, password string) {
	v.Check(password != "", "password", "must be provided")
	v.Check(len(password) >= 8 && len(password) <= 72, "password", "must be between 8 and 72 bytes long")
}

func validateRole(v *common.Validator, role Role, permitted ...Role) {
	v.Check(common.PermittedValue(role, permitted...), "role", "invalid role")
}

func validateResetToken(v *common.Validator, token string) {
	v.Check(token != "", "token", "must be provided")
	v.Check(len(token) == 26, "token", "must be 26 bytes long")
}

func validateProfile(v *common.Validator, req *UpdateProfileRequest) {
	if req.Name != nil {
		validateName(v, *req.Name)
	}

	if req.Bio != nil {
		v.Check(v.CheckStringLength(*req.Bio, 0, 500), "bio", "must not be more than 500 characters long")
	}

	if req.Avatar != nil && *req.Avatar != "" {
		v.Check(isHTTPURL(*req.Avatar), "avatar", "must be a valid http or https URL")
	}

	if req.Website != nil && *req.Website != "" {
		v.Check(isHTTPURL(*req.Website), "website", "must be a valid http or https URL")
	}

	if req.Location != nil {
		v.Check(v.CheckStringLength(*req.Location, 0, 100), "location", "must not be more than 100 characters long")
	}
}

func isHTTPURL(s string) bool {
	u, err := url.ParseRequestURI(s)
	if err != nil {
		return false
	}

	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
