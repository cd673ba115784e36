package writer

import (
	"embed"
	"fmt"
)

//go:embed templates/*.xml
var templateFS embed.FS

// template returns an embedded markup fragment.
func template(name string) string {
	b, err := templateFS.ReadFile("templates/" + name)
	if err != nil {
		panic(fmt.Sprintf("writer: missing template %s: %v", name, err))
	}
	return string(b)
}

var (
	themeMarkup          = template("theme.xml")
	masterCSldMarkup     = template("master_csld.xml")
	masterTxStylesMarkup = template("master_txstyles.xml")
	layoutBodyMarkup     = template("layout_body.xml")
)
