package segment

import "github.com/microcosm-cc/bluemonday"

// policy is the allow-list applied to story HTML: the bluemonday UGC set of
// structural and inline text elements, tables, images and links
// (rel="nofollow" added). Scripts, styles, frames, forms, event handler
// attributes and non-http(s)/mailto URLs are removed.
var policy = func() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowElements("hr", "section", "article", "header", "footer")
	return p
}()

// Sanitize strips everything from s that is not on the story allow-list.
func Sanitize(s string) string {
	return policy.Sanitize(s)
}
