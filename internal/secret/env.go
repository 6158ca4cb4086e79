package secret

import (
	"fmt"
	"os"
	"strings"
)

// EnvStore reads secrets from environment variables. Keys map to upper
// case variables with an optional prefix: "gemini_api_key" is
// GEMINI_API_KEY. It is read-only.
type EnvStore struct {
	prefix string
	getenv func(string) string
}

func NewEnvStore(prefix string) *EnvStore {
	return &EnvStore{prefix: prefix, getenv: os.Getenv}
}

// Var returns the variable name for key.
func (e *EnvStore) Var(key string) string {
	return e.prefix + strings.ToUpper(key)
}

func (e *EnvStore) Get(key string) ([]byte, error) {
	v := e.getenv(e.Var(key))
	if v == "" {
		return nil, nil
	}
	return []byte(v), nil
}

func (e *EnvStore) Set(key string, _ []byte) error {
	return fmt.Errorf("env store is read-only: set %s instead", e.Var(key))
}

func (e *EnvStore) Delete(key string) error {
	return fmt.Errorf("env store is read-only: unset %s instead", e.Var(key))
}

// ChainStore reads from the first store that has a value and writes to
// the last one.
type ChainStore struct {
	stores []SecretStore
}

func NewChainStore(stores ...SecretStore) *ChainStore {
	return &ChainStore{stores: stores}
}

func (c *ChainStore) Get(key string) ([]byte, error) {
	for _, s := range c.stores {
		v, err := s.Get(key)
		if err != nil {
			return nil, err
		}
		if len(v) > 0 {
			return v, nil
		}
	}
	return nil, nil
}

func (c *ChainStore) Set(key string, value []byte) error {
	if len(c.stores) == 0 {
		return fmt.Errorf("no secret store configured")
	}
	return c.stores[len(c.stores)-1].Set(key, value)
}

func (c *ChainStore) Delete(key string) error {
	if len(c.stores) == 0 {
		return nil
	}
	return c.stores[len(c.stores)-1].Delete(key)
}
