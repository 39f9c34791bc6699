package config

import (
	"fmt"
	"os"
	"strings"
)

// LoadCities reads the newline-delimited city list, dropping blank lines
// and lowercasing each entry. City order is preserved.
func LoadCities(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read cities file %s: %w", path, err)
	}

	var cities []string
	for _, line := range strings.Split(string(data), "\n") {
		city := strings.ToLower(strings.TrimSpace(line))
		if city == "" {
			continue
		}
		cities = append(cities, city)
	}
	return cities, nil
}
