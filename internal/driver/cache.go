package driver

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"jsphp/internal/config"
	"jsphp/internal/source"
	"jsphp/internal/token"
)

// Current schema version - increment when CachedStream format changes
const tokenCacheSchemaVersion uint16 = 1

// Digest is a sha256 cache key.
type Digest [32]byte

func (d Digest) String() string { return hex.EncodeToString(d[:]) }

// TokenCache хранит потоки токенов на диске, ключ зависит от содержимого и конфигурации.
// Thread-safe for concurrent access.
type TokenCache struct {
	mu  sync.RWMutex
	dir string
}

// CachedToken is the on-disk form of a token. Kinds are stored by name
// because kind numbers depend on registration order.
type CachedToken struct {
	Type  string            `msgpack:"t"`
	Kind  string            `msgpack:"k"`
	Mode  uint8             `msgpack:"m"`
	Data  map[string]string `msgpack:"d,omitempty"`
	Start uint32            `msgpack:"s"`
	End   uint32            `msgpack:"e"`
	Line  uint32            `msgpack:"l"`
}

// CachedStream is the payload stored per key. Only successful scans are cached.
type CachedStream struct {
	Schema uint16
	Path   string
	Tokens []CachedToken
}

// OpenTokenCache initializes the cache under $XDG_CACHE_HOME/<app> (or ~/.cache/<app>).
func OpenTokenCache(app string) (*TokenCache, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		base = filepath.Join(home, ".cache")
	}
	return NewTokenCache(filepath.Join(base, app))
}

// NewTokenCache uses dir as the cache root, creating it when needed.
func NewTokenCache(dir string) (*TokenCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &TokenCache{dir: dir}, nil
}

// Dir returns the cache root.
func (c *TokenCache) Dir() string {
	if c == nil {
		return ""
	}
	return c.dir
}

// CacheKey mixes the file content hash with everything in cfg that changes the token stream.
func CacheKey(file *source.File, cfg config.Config) Digest {
	h := sha256.New()
	var buf [8]byte
	writeStr := func(s string) {
		binary.LittleEndian.PutUint64(buf[:], uint64(len(s)))
		h.Write(buf[:])
		h.Write([]byte(s))
	}
	binary.LittleEndian.PutUint64(buf[:], uint64(tokenCacheSchemaVersion))
	h.Write(buf[:])
	h.Write(file.Hash[:])
	writeStr(cfg.Patterns.Fingerprint())
	disallow := slices.Clone(cfg.Disallow)
	for i := range disallow {
		disallow[i] = token.KindName(disallow[i])
	}
	slices.Sort(disallow)
	writeStr(strings.Join(slices.Compact(disallow), " "))
	builder := strings.ToLower(strings.TrimSpace(cfg.TokenBuilder))
	if builder == "" {
		builder = "default"
	}
	writeStr(builder)

	var d Digest
	copy(d[:], h.Sum(nil))
	return d
}

func (c *TokenCache) pathFor(key Digest) string {
	hexKey := key.String()
	// Подкаталог по первым двум символам, чтобы не раздувать один каталог.
	return filepath.Join(c.dir, "tokens", hexKey[:2], hexKey+".mp")
}

// Put serializes and writes a payload to the disk cache.
func (c *TokenCache) Put(key Digest, payload *CachedStream) (err error) {
	if c == nil || payload == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.pathFor(key)
	if err = os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return err
	}
	renamed := false
	defer func() {
		if renamed {
			return
		}
		_ = f.Close()
		if rmErr := os.Remove(f.Name()); rmErr != nil && err == nil {
			err = rmErr
		}
	}()

	payload.Schema = tokenCacheSchemaVersion
	if err = msgpack.NewEncoder(f).Encode(payload); err != nil {
		return err
	}
	if err = f.Close(); err != nil {
		return err
	}
	// Атомарная замена
	if err = os.Rename(f.Name(), p); err != nil {
		return err
	}
	renamed = true
	return nil
}

// Get reads a payload. A missing entry or a schema mismatch is a miss, not an error.
func (c *TokenCache) Get(key Digest, out *CachedStream) (bool, error) {
	if c == nil {
		return false, nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	data, err := os.ReadFile(c.pathFor(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	if err := msgpack.Unmarshal(data, out); err != nil {
		return false, err
	}
	if out.Schema != tokenCacheSchemaVersion {
		return false, nil
	}
	return true, nil
}

// DropAll invalidates the cache, useful after format changes.
func (c *TokenCache) DropAll() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	// переименуем каталог, удалим и создадим заново
	old := c.dir + ".old-" + time.Now().Format("20060102150405.000000000")
	if err := os.Rename(c.dir, old); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return os.MkdirAll(c.dir, 0o755)
		}
		return err
	}
	if err := os.RemoveAll(old); err != nil {
		return err
	}
	return os.MkdirAll(c.dir, 0o755)
}

func encodeTokens(path string, toks []token.Token) *CachedStream {
	out := &CachedStream{Path: path, Tokens: make([]CachedToken, len(toks))}
	for i, tok := range toks {
		out.Tokens[i] = CachedToken{
			Type:  tok.Type,
			Kind:  tok.Kind.String(),
			Mode:  uint8(tok.Mode),
			Data:  tok.Data,
			Start: tok.Span.Start,
			End:   tok.Span.End,
			Line:  tok.Line,
		}
	}
	return out
}

// decodeTokens rebuilds tokens for file. It fails when a kind is not registered in this process.
func decodeTokens(file source.FileID, stream *CachedStream) ([]token.Token, bool) {
	toks := make([]token.Token, len(stream.Tokens))
	for i, ct := range stream.Tokens {
		kind, ok := token.Lookup(ct.Kind)
		if !ok {
			return nil, false
		}
		toks[i] = token.Token{
			Type: ct.Type,
			Kind: kind,
			Mode: token.Mode(ct.Mode),
			Data: token.Data(ct.Data),
			Span: source.Span{File: file, Start: ct.Start, End: ct.End},
			Line: ct.Line,
		}
	}
	return toks, true
}
