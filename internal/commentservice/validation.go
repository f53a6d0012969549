package commentservice

import (
	"github.com/sushihentaime/blogverse/internal/common"
)

func validateText(v *common.Validator, text string) {
	v.Check(text != "", "comment", "must be provided")
	v.Check(v.CheckStringLength(text, 1, MaxCommentLength), "comment", "must not be more than 1000 characters long")
}
