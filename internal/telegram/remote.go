package telegram

import (
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/fxamacker/cbor/v2"
	"github.com/gotd/td/tg"
)

// remoteFile — содержимое идентификатора удаленного файла.
type remoteFile struct {
	ID            int64  `cbor:"1,keyasint"`
	AccessHash    int64  `cbor:"2,keyasint"`
	FileReference []byte `cbor:"3,keyasint,omitempty"`
}

var (
	remoteEncMode cbor.EncMode
	remoteDecMode cbor.DecMode
)

func init() {
	var err error
	// Одинаковый документ всегда дает одинаковый идентификатор.
	remoteEncMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("telegram: CBOR encoder initialization failed: " + err.Error())
	}
	remoteDecMode, err = cbor.DecOptions{}.DecMode()
	if err != nil {
		panic("telegram: CBOR decoder initialization failed: " + err.Error())
	}
}

// encodeRemoteID упаковывает ссылку на документ в непрозрачную строку.
func encodeRemoteID(doc *tg.Document) (string, error) {
	data, err := remoteEncMode.Marshal(remoteFile{
		ID:            doc.ID,
		AccessHash:    doc.AccessHash,
		FileReference: doc.FileReference,
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode remote file id: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(data), nil
}

// decodeRemoteID восстанавливает ссылку на документ из строки encodeRemoteID.
func decodeRemoteID(id string) (*tg.InputDocument, error) {
	if id == "" {
		return nil, errors.New("remote file id is empty")
	}
	data, err := base64.RawURLEncoding.DecodeString(id)
	if err != nil {
		return nil, fmt.Errorf("invalid remote file id: %w", err)
	}
	var f remoteFile
	if err := remoteDecMode.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("invalid remote file id: %w", err)
	}
	if f.ID == 0 {
		return nil, errors.New("invalid remote file id: document id is zero")
	}
	return &tg.InputDocument{
		ID:            f.ID,
		AccessHash:    f.AccessHash,
		FileReference: f.FileReference,
	}, nil
}
