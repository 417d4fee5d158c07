package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Origenes posibles de un valor de configuracion.
const (
	SourceEnv     = "environment"
	SourceSecrets = "secrets-store"
	SourceDefault = "default"
)

// DefaultSecretsFile es la ruta del almacen de secretos de la plataforma.
const DefaultSecretsFile = ".secrets/secrets.yaml"

// Source es una estrategia de busqueda de valores por clave.
type Source interface {
	Name() string
	Lookup(key string) (string, bool)
}

// EnvSource lee variables del entorno del proceso.
type EnvSource struct {
	lookup func(string) (string, bool)
}

func NewEnvSource() EnvSource {
	return EnvSource{lookup: os.LookupEnv}
}

func (s EnvSource) Name() string { return SourceEnv }

func (s EnvSource) Lookup(key string) (string, bool) {
	if s.lookup == nil {
		return "", false
	}
	return s.lookup(key)
}

// MapSource sirve valores desde un mapa fijo.
type MapSource struct {
	name   string
	values map[string]string
}

func NewMapSource(name string, values map[string]string) MapSource {
	if values == nil {
		values = map[string]string{}
	}
	return MapSource{name: name, values: values}
}

func (s MapSource) Name() string { return s.name }

func (s MapSource) Lookup(key string) (string, bool) {
	v, ok := s.values[key]
	return v, ok
}

// NewFileSource carga el almacen de secretos desde un YAML plano (CLAVE: valor).
// Un archivo inexistente equivale a un almacen vacio.
func NewFileSource(path string) (MapSource, error) {
	values := map[string]string{}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return NewMapSource(SourceSecrets, values), nil
		}
		return MapSource{}, fmt.Errorf("read secrets file: %w", err)
	}

	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return MapSource{}, fmt.Errorf("parse secrets file: %w", err)
	}
	for key, val := range raw {
		switch v := val.(type) {
		case nil, map[string]any, []any:
			// solo escalares
		case string:
			values[key] = v
		default:
			values[key] = fmt.Sprint(v)
		}
	}
	return NewMapSource(SourceSecrets, values), nil
}

// Resolver evalua las fuentes en orden hasta encontrar un valor no vacio.
type Resolver struct {
	sources []Source
}

func NewResolver(sources ...Source) *Resolver {
	return &Resolver{sources: sources}
}

// Lookup devuelve el valor y el nombre de la fuente que lo proveyo.
func (r *Resolver) Lookup(key string) (string, string, bool) {
	for _, src := range r.sources {
		v, ok := src.Lookup(key)
		if !ok || strings.TrimSpace(v) == "" {
			continue
		}
		return v, src.Name(), true
	}
	return "", "", false
}

// Get resuelve key y cae en def si ninguna fuente lo define.
func (r *Resolver) Get(key, def string) string {
	if v, _, ok := r.Lookup(key); ok {
		return v
	}
	return def
}

// DefaultResolver arma entorno -> almacen de secretos. La ruta del almacen
// puede sobreescribirse con GITA_SECRETS_FILE.
func DefaultResolver() (*Resolver, error) {
	envSrc := NewEnvSource()
	path := DefaultSecretsFile
	if p, ok := envSrc.Lookup("GITA_SECRETS_FILE"); ok && strings.TrimSpace(p) != "" {
		path = p
	}
	fileSrc, err := NewFileSource(path)
	if err != nil {
		return nil, err
	}
	return NewResolver(envSrc, fileSrc), nil
}
