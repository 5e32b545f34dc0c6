package geodata

import (
	"fmt"
	"io"
	"os"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/shuv1824/skycast/internal/types"
)

var (
	data     []types.City
	loadOnce sync.Once
	loadErr  error
)

// Load reads the preset city file once. Safe to call multiple times.
func Load(filepath string) error {
	loadOnce.Do(func() {
		file, err := os.Open(filepath)
		if err != nil {
			loadErr = err
			return
		}
		defer file.Close()

		data, loadErr = Parse(file)
	})

	return loadErr
}

// Parse decodes a YAML city list, dropping entries without a name or with
// out-of-range coordinates.
func Parse(r io.Reader) ([]types.City, error) {
	var raw types.CitiesFile
	if err := yaml.NewDecoder(r).Decode(&raw); err != nil && err != io.EOF {
		return nil, fmt.Errorf("decode cities: %w", err)
	}

	cities := make([]types.City, 0, len(raw.Cities))
	for _, c := range raw.Cities {
		if c.Name == "" || !c.Coordinates().Valid() {
			continue
		}
		cities = append(cities, c)
	}
	return cities, nil
}

func Cities() []types.City {
	return data
}
