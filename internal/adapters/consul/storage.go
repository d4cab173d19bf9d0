package consul

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/hashicorp/consul/api"

	"tagit/internal/ports"
)

const defaultPrefix = "tagit/"

// Config contains the connection settings for the Consul backend
type Config struct {
	// Address of the Consul agent (default: "127.0.0.1:8500")
	Address string `yaml:"address"`

	// Token for Consul ACL authentication (optional)
	Token string `yaml:"token"`

	// Datacenter to use (optional)
	Datacenter string `yaml:"datacenter"`

	// Prefix for all keys in Consul KV (default: "tagit/")
	Prefix string `yaml:"prefix"`
}

// Storage keeps each association as a JSON array under
// <prefix><base64url(identity)>, since identities contain slashes.
//
// Consul KV has a 512KB limit per value, far above any realistic tag set.
type Storage struct {
	kv     *api.KV
	prefix string
}

// Ensure Storage implements TagStorage and TagMover
var (
	_ ports.TagStorage = (*Storage)(nil)
	_ ports.TagMover   = (*Storage)(nil)
)

// New creates a Consul KV storage. No connection is made until the first call.
func New(config Config) (*Storage, error) {
	if config.Address == "" {
		config.Address = "127.0.0.1:8500"
	}
	if config.Prefix == "" {
		config.Prefix = defaultPrefix
	}
	config.Prefix = strings.TrimPrefix(config.Prefix, "/")
	if !strings.HasSuffix(config.Prefix, "/") {
		config.Prefix += "/"
	}

	clientConfig := api.DefaultConfig()
	clientConfig.Address = config.Address
	if config.Token != "" {
		clientConfig.Token = config.Token
	}
	if config.Datacenter != "" {
		clientConfig.Datacenter = config.Datacenter
	}

	client, err := api.NewClient(clientConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create consul client: %w", err)
	}

	return &Storage{
		kv:     client.KV(),
		prefix: config.Prefix,
	}, nil
}

// buildKey maps an identity to its Consul key
func (s *Storage) buildKey(id string) string {
	return s.prefix + base64.RawURLEncoding.EncodeToString([]byte(id))
}

// parseKey is the inverse of buildKey
func (s *Storage) parseKey(key string) (string, bool) {
	encoded, ok := strings.CutPrefix(key, s.prefix)
	if !ok || encoded == "" || strings.Contains(encoded, "/") {
		return "", false
	}
	id, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return "", false
	}
	return string(id), true
}

func queryOptions(ctx context.Context) *api.QueryOptions {
	return (&api.QueryOptions{}).WithContext(ctx)
}

func writeOptions(ctx context.Context) *api.WriteOptions {
	return (&api.WriteOptions{}).WithContext(ctx)
}

// Read returns the tags stored for key
func (s *Storage) Read(ctx context.Context, key string) ([]string, bool, error) {
	pair, _, err := s.kv.Get(s.buildKey(key), queryOptions(ctx))
	if err != nil {
		return nil, false, err
	}
	if pair == nil {
		return nil, false, nil
	}

	var tags []string
	if err := json.Unmarshal(pair.Value, &tags); err != nil {
		return nil, false, fmt.Errorf("decode %s: %w", pair.Key, err)
	}
	return tags, true, nil
}

// Write replaces the value stored for key
func (s *Storage) Write(ctx context.Context, key string, tags []string) error {
	value, err := json.Marshal(tags)
	if err != nil {
		return err
	}

	pair := &api.KVPair{Key: s.buildKey(key), Value: value}
	_, err = s.kv.Put(pair, writeOptions(ctx))
	return err
}

// Delete removes key. Consul treats a missing key as success.
func (s *Storage) Delete(ctx context.Context, key string) error {
	_, err := s.kv.Delete(s.buildKey(key), writeOptions(ctx))
	return err
}

// Keys returns every identity under the prefix. Foreign keys are ignored.
func (s *Storage) Keys(ctx context.Context) ([]string, error) {
	consulKeys, _, err := s.kv.Keys(s.prefix, "", queryOptions(ctx))
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(consulKeys))
	for _, k := range consulKeys {
		if id, ok := s.parseKey(k); ok {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// Move sets newKey and deletes oldKey in a single KV transaction
func (s *Storage) Move(ctx context.Context, oldKey, newKey string, tags []string) error {
	value, err := json.Marshal(tags)
	if err != nil {
		return err
	}

	ops := api.KVTxnOps{
		{Verb: api.KVSet, Key: s.buildKey(newKey), Value: value},
		{Verb: api.KVDelete, Key: s.buildKey(oldKey)},
	}

	ok, resp, _, err := s.kv.Txn(ops, queryOptions(ctx))
	if err != nil {
		return err
	}
	if !ok {
		msgs := make([]string, 0, len(resp.Errors))
		for _, e := range resp.Errors {
			msgs = append(msgs, e.What)
		}
		return fmt.Errorf("consul transaction rolled back: %s", strings.Join(msgs, "; "))
	}
	return nil
}

// Close is a no-op; the Consul client is stateless
func (s *Storage) Close() error {
	return nil
}
