package report

import (
	"fmt"
	"io/fs"
	"sync"

	"github.com/medistock/medistock/web"
)

var (
	assetsOnce sync.Once
	assets     map[string][]byte
	assetsErr  error
)

// PrintAssets returns the stylesheet the pdf layout links to, keyed by the
// relative name it is linked under.
func PrintAssets() (map[string][]byte, error) {
	assetsOnce.Do(func() {
		css, err := fs.ReadFile(web.Assets(), "css/print.css")
		if err != nil {
			assetsErr = fmt.Errorf("report: read print stylesheet: %w", err)
			return
		}
		assets = map[string][]byte{"print.css": css}
	})
	return assets, assetsErr
}
