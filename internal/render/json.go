package render

import (
	"io"

	"github.com/debtmap-go/debtmap/pkg/debt"
)

// JSON writes snap's canonical JSON representation to w: sorted keys,
// floats rounded to 6 significant digits, so two runs over an unchanged
// codebase serialize byte-identical.
func JSON(w io.Writer, snap *debt.AnalysisSnapshot) error {
	raw, err := snap.CanonicalJSON()
	if err != nil {
		return err
	}
	_, err = w.Write(raw)
	if err != nil {
		return err
	}
	_, err = w.Write([]byte("\n"))
	return err
}
