// processor/pipeline.go
package processor

import (
	"crypto/cipher"
	"encoding/base64"

	"github.com/golang/snappy"
)

// Codec отвечает за подготовку текста сообщения к хранению в БД
// и за обратное восстановление исходного текста.
type Codec struct {
	gcm cipher.AEAD
}

// NewCodec создает кодек хранения с заданным 32-байтовым ключом AES-256.
func NewCodec(key []byte) (*Codec, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	return &Codec{gcm: gcm}, nil
}

// EncodeForStorage готовит текст сообщения к записи в БД:
// сжимает его Snappy, шифрует AES-GCM и кодирует результат в base64
// для хранения в текстовой колонке.
func (c *Codec) EncodeForStorage(plaintext string) (string, error) {
	compressed := snappy.Encode(nil, []byte(plaintext))

	encrypted, err := aesGCMEncrypt(c.gcm, compressed)
	if err != nil {
		return "", err
	}

	return base64.StdEncoding.EncodeToString(encrypted), nil
}

// DecodeFromStorage выполняет обратный процесс: декодирует base64,
// расшифровывает AES-GCM и распаковывает Snappy. Возвращается
// исходный текст сообщения.
func (c *Codec) DecodeFromStorage(encoded string) (string, error) {
	encrypted, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", err
	}

	compressed, err := aesGCMDecrypt(c.gcm, encrypted)
	if err != nil {
		return "", err
	}

	plaintext, err := snappy.Decode(nil, compressed)
	if err != nil {
		return "", err
	}
	return string(plaintext), nil
}
