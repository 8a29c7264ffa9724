package export

import (
	"encoding/json"
	"fmt"
	"os"

	apperrors "github.com/saudedados/leitos-backend/pkg/errors"
)

// WriteErrorList writes the batch run's failed facility codes to a JSON file,
// one array of codes, for downstream inspection.
func WriteErrorList(path string, codes []string) error {
	if codes == nil {
		codes = []string{}
	}
	data, err := json.Marshal(codes)
	if err != nil {
		return apperrors.NewInternalError("failed to encode error list", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return apperrors.NewStorageError(fmt.Sprintf("failed to write error list %s", path), err)
	}
	return nil
}
