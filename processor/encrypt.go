package processor

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"io"
)

// Шифрование данных с использованием AES-GCM, добавляя nonce в начало зашифрованного текста.
func aesGCMEncrypt(gcm cipher.AEAD, plaintext []byte) ([]byte, error) {
	nonce := make([]byte, gcm.NonceSize()) // Создаем буфер для хранения нонса (инициализационный вектор для каждого сообщения)

	if _, err := io.ReadFull(rand.Reader, nonce); err != nil { // Заполняем нонс случайными байтами (помогает обеспечить уникальность шифрования для каждого сообщения)
		return nil, err
	}
	ciphertext := gcm.Seal(nonce, nonce, plaintext, nil) // Шифруем текст и добавляем нонс в начало зашифрованного текста
	return ciphertext, nil
}

// Расшифровка данных, аналогичная шифрованию.
func aesGCMDecrypt(gcm cipher.AEAD, ciphertext []byte) ([]byte, error) {
	nonceSize := gcm.NonceSize() // Получаем размер нонса для данного шифра GCM
	if len(ciphertext) < nonceSize {
		return nil, errors.New("ciphertext too short") // Проверяем, достаточно ли длины зашифрованного текста для нонса
	}
	nonce, ct := ciphertext[:nonceSize], ciphertext[nonceSize:] // Разделяем зашифрованный текст на нонс и сам зашифрованный текст
	plaintext, err := gcm.Open(nil, nonce, ct, nil)             // Расшифровываем текст
	if err != nil {
		return nil, err
	}
	return plaintext, nil
}

// newGCM создает AEAD-шифр AES-256-GCM из 32-байтового ключа.
func newGCM(key []byte) (cipher.AEAD, error) {
	if len(key) != 32 {
		return nil, errors.New("storage key must be exactly 32 bytes")
	}
	block, err := aes.NewCipher(key) // Создаем новый блочный шифр AES с заданным ключом
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block) // Создаем объект GCM (Galois/Counter Mode) для работы с блоком шифрования
}
