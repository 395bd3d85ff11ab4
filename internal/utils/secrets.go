package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Секреты сервиса монтируются в контейнер как Docker secrets.
const secretsDir = "/run/secrets"

// ReadSecret возвращает значение секрета name, прочитанное из файла.
// Fallback на переменные окружения намеренно отсутствует.
func ReadSecret(name string) (string, error) {
	return readSecretFrom(secretsDir, name)
}

func readSecretFrom(dir, name string) (string, error) {
	path := filepath.Join(dir, name)
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read secret %s: %w", name, err)
	}
	value := strings.TrimSpace(string(raw))
	if value == "" {
		return "", fmt.Errorf("secret %s is empty", name)
	}
	return value, nil
}
