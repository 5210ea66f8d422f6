package diagfmt

import (
	"io"
	"github.com/calor-lang/effects/internal/diag"
	"github.com/calor-lang/effects/internal/source"
)

// Sarif принимает те же данные, что и JSON, но ничего не пишет в w:
// SARIF-вывод (v2.1.0) не реализован.
func Sarif(w io.Writer, bag *diag.Bag, fs *source.FileSet, meta SarifRunMeta) {
	_ = w
	_ = bag
	_ = fs
	_ = meta
}
