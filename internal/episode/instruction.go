package episode

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// LoadInstruction returns the stripped first line of the trajectory's
// language annotation. An absent file is the expected placeholder for
// missing annotation and yields an empty string, never an error.
func LoadInstruction(dir string) (string, error) {
	path := filepath.Join(dir, InstructionFileName)
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", fmt.Errorf("episode: open instruction %s: %w", path, err)
	}
	defer file.Close()

	// ReadString rather than a Scanner: annotations have no length cap, and
	// a file that ends without a newline still yields its one line.
	line, err := bufio.NewReader(file).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("episode: read instruction %s: %w", path, err)
	}
	return strings.TrimSpace(line), nil
}
