package blogservice

import (
	"github.com/sushihentaime/blogverse/internal/common"
)

func validateTitle(v *common.Validator, title string) {
	v.Check(title != "", "title", "must be provided")
	v.Check(v.CheckStringLength(title, 3, 150), "title", "must be between 3 and 150 characters long")
}

func validateContent(v *common.Validator, content string) {
	v.Check(content != "", "content", "must be provided")
	v.Check(v.CheckStringLength(content, 1, 100_000), "content", "must not be more than 100000 characters long")
}

func validateTags(v *common.Validator, tags []string) {
	v.Check(len(tags) <= MaxTags, "tags", "must not contain more than 10 tags")
	for _, t := range tags {
		v.Check(v.CheckStringLength(t, 1, MaxTagLength), "tags", "each tag must be between 1 and 30 characters long")
	}
}

func validateCategory(v *common.Validator, c Category) {
	v.Check(common.PermittedValue(c, Categories...), "category", "must be a known category")
}
