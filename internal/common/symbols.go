package common

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v2"
)

type SymbolConfig struct {
	Symbol string `yaml:"symbol"`
	Name   string `yaml:"name"`
}

type SymbolsConfig struct {
	Symbols []SymbolConfig `yaml:"symbols"`
}

func LoadSymbolConfig(symbolsFile string) ([]SymbolConfig, error) {
	var symbolsPath string
	if filepath.IsAbs(symbolsFile) {
		symbolsPath = symbolsFile
	} else {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}
		symbolsPath = filepath.Join(wd, symbolsFile)
	}

	data, err := os.ReadFile(symbolsPath)
	if err != nil {
		return nil, fmt.Errorf("unable to read %s: %w", symbolsFile, err)
	}

	var config SymbolsConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("unable to parse %s: %w", symbolsFile, err)
	}

	for i, symbol := range config.Symbols {
		if symbol.Symbol == "" {
			return nil, fmt.Errorf("symbol at index %d missing symbol", i)
		}
		if len(symbol.Symbol) > 10 {
			return nil, fmt.Errorf("symbol %q at index %d is longer than 10 characters", symbol.Symbol, i)
		}
	}

	return config.Symbols, nil
}

// LoadSymbols returns the distinct tracked symbols, upper-cased, in file order
func LoadSymbols(symbolsFile string) ([]string, error) {
	configs, err := LoadSymbolConfig(symbolsFile)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(configs))
	symbols := make([]string, 0, len(configs))
	for _, c := range configs {
		symbol := strings.ToUpper(c.Symbol)
		if seen[symbol] {
			continue
		}
		seen[symbol] = true
		symbols = append(symbols, symbol)
	}

	return symbols, nil
}

func loadLocation(name string) (*time.Location, error) {
	if name == "" {
		return time.Local, nil
	}
	location, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("unable to load time zone %q: %w", name, err)
	}
	return location, nil
}
