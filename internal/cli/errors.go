package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/amtp-labs/amtp-cli/internal/amtp"
)

// printError writes the single diagnostic line for err (plus gateway
// details when present).
func printError(w io.Writer, err error) {
	var apiErr *amtp.Error
	if errors.As(err, &apiErr) {
		fmt.Fprintf(w, "Error (%s): %s\n", apiErr.Code, apiErr.Message)
		if len(apiErr.Details) > 0 {
			var details bytes.Buffer
			if json.Compact(&details, apiErr.Details) != nil {
				details.Reset()
				details.Write(apiErr.Details)
			}
			fmt.Fprintf(w, "  Details: %s\n", details.String())
		}
		return
	}

	var transportErr *amtp.TransportError
	if errors.As(err, &transportErr) {
		fmt.Fprintf(w, "Error: Cannot connect to gateway at %s. Is the gateway running?\n", transportErr.URL)
		return
	}

	fmt.Fprintf(w, "Error: %v\n", err)
}
