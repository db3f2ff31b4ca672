package conf

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/zeptools/gw-livedocx/apis/livedocx"
	"github.com/zeptools/gw-livedocx/sec"
)

// LiveDocxConfNames are tried in order under config/
var LiveDocxConfNames = []string{".livedocx.json", ".livedocx.toml", ".livedocx.yaml", ".livedocx.yml"}

var ErrNoLiveDocxConf = errors.New("no livedocx config file found")

// DecodeFile unmarshals a JSON, TOML or YAML file into v, chosen by the file extension
func DecodeFile(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		err = json.Unmarshal(data, v)
	case ".toml":
		err = toml.Unmarshal(data, v)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, v)
	default:
		return fmt.Errorf("%s: unsupported config format", path)
	}
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

// PrepareLiveDocx loads the first existing file of LiveDocxConfNames into LiveDocxConf.
// An encrypted pw_enc is decrypted with the key in sec.ConfKeyEnv and takes precedence over pw.
// The WSDL is fetched here once, so clients built afterwards go straight to the endpoint
func (c *Core) PrepareLiveDocx() error {
	for _, name := range LiveDocxConfNames {
		confFilePath := filepath.Join(c.AppRoot, "config", name)
		err := DecodeFile(confFilePath, &c.LiveDocxConf)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return err
		}
		c.Logger.Debugw("livedocx config loaded", "file", confFilePath)
		if err = c.decryptLiveDocxPW(); err != nil {
			return err
		}
		return livedocx.Resolve(c.RootCtx, &c.LiveDocxConf, livedocx.WithLogger(c.Logger.Named("livedocx")))
	}
	return fmt.Errorf("%w in %s", ErrNoLiveDocxConf, filepath.Join(c.AppRoot, "config"))
}

func (c *Core) decryptLiveDocxPW() error {
	if c.LiveDocxConf.PWEnc == "" {
		return nil
	}
	cipher, err := sec.NewConfCipherFromEnv()
	if err != nil {
		return fmt.Errorf("livedocx pw_enc: %w", err)
	}
	pw, err := cipher.DecryptString(c.LiveDocxConf.PWEnc)
	if err != nil {
		return fmt.Errorf("livedocx pw_enc: %w", err)
	}
	c.LiveDocxConf.PW = pw
	return nil
}

// NewLiveDocxClient dials a new independent client. Each one owns its own session cookie jar.
// After PrepareLiveDocx this makes no network call
func (c *Core) NewLiveDocxClient(ctx context.Context) (*livedocx.Client, error) {
	return livedocx.Dial(ctx, &c.LiveDocxConf, livedocx.WithLogger(c.Logger.Named("livedocx")))
}

// LiveDocxSession runs fn in a logged-in session of a new client with the configured credentials
func (c *Core) LiveDocxSession(ctx context.Context, fn func(ctx context.Context, client *livedocx.Client) error) error {
	client, err := c.NewLiveDocxClient(ctx)
	if err != nil {
		return err
	}
	return client.Session(ctx, c.LiveDocxConf.Username, c.LiveDocxConf.PW, fn)
}
