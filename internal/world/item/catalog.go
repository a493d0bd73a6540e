package item

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

type catalogEntry struct {
	ItemType `yaml:",inline"`
	Group    string `yaml:"group"`
}

type catalogFile struct {
	Items []catalogEntry `yaml:"items"`
}

// LoadCatalog читает YAML-каталог типов предметов и регистрирует их
func (r *Registry) LoadCatalog(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open item catalog %s: %w", path, err)
	}
	defer f.Close()

	n, err := r.ReadCatalog(f)
	if err != nil {
		return fmt.Errorf("parse item catalog %s: %w", path, err)
	}
	r.log.Info("загружено %d типов предметов из %s", n, path)
	return nil
}

// ReadCatalog разбирает каталог из потока, возвращает число зарегистрированных типов
func (r *Registry) ReadCatalog(src io.Reader) (int, error) {
	var file catalogFile
	if err := yaml.NewDecoder(src).Decode(&file); err != nil {
		return 0, err
	}

	for i := range file.Items {
		entry := file.Items[i]
		if entry.ID == 0 {
			return 0, fmt.Errorf("запись %d: id 0 зарезервирован", i)
		}
		t := entry.ItemType
		t.Group = parseGroup(entry.Group)
		r.Register(&t)
	}
	return len(file.Items), nil
}
