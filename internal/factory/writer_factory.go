package factory

import (
	"fmt"
	"sort"

	"FlowTagger/internal/config"
	"FlowTagger/internal/logging"
	"FlowTagger/internal/model"
)

// WriterFactory creates a report writer from its configuration entry.
type WriterFactory func(def config.WriterDef) (model.Writer, error)

// registry holds the mapping of writer types to their factory functions.
var registry = make(map[string]WriterFactory)

// RegisterWriter registers a new writer type with its factory function.
func RegisterWriter(name string, factory WriterFactory) {
	if _, exists := registry[name]; exists {
		panic(fmt.Sprintf("writer type '%s' already registered", name))
	}
	registry[name] = factory
}

// Registered returns the sorted names of all registered writer types.
func Registered() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Create builds the enabled writers from the config. Entries with an unknown type
// or whose writer cannot be constructed are skipped with a warning.
func Create(cfg *config.Config) []model.Writer {
	log := logging.WithComponent("factory")

	var writers []model.Writer
	for _, def := range cfg.Writers {
		if !def.Enabled {
			continue
		}

		factory, ok := registry[def.Type]
		if !ok {
			log.Warnf("Unknown writer type '%s' in config, skipping.", def.Type)
			continue
		}

		writer, err := factory(def)
		if err != nil {
			log.WithError(err).Warnf("Failed to create writer type '%s', skipping.", def.Type)
			continue
		}
		log.Debugf("Created writer '%s'.", writer.Name())
		writers = append(writers, writer)
	}

	return writers
}
