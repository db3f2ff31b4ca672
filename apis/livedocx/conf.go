package livedocx

import (
	"time"
)

const DefaultWSDL = "https://api.livedocx.com/1.2/mailmerge.asmx?wsdl"

type Conf struct {
	WSDL      string   `json:"wsdl" toml:"wsdl" yaml:"wsdl"`                // service description URL. DefaultWSDL if empty
	Endpoint  string   `json:"endpoint" toml:"endpoint" yaml:"endpoint"`    // skips WSDL discovery when set
	Namespace string   `json:"namespace" toml:"namespace" yaml:"namespace"` // required with Endpoint. soap.DefaultNamespace if empty
	Username  string   `json:"username" toml:"username" yaml:"username"`
	PW        string   `json:"pw" toml:"pw" yaml:"pw"`
	PWEnc     string   `json:"pw_enc" toml:"pw_enc" yaml:"pw_enc"` // encrypted PW. see sec.XChaCha20Poly1305Cipher
	Timeout   Duration `json:"timeout" toml:"timeout" yaml:"timeout"`
}

func (c *Conf) WSDLURL() string {
	if c.WSDL == "" {
		return DefaultWSDL
	}
	return c.WSDL
}

// Duration is a time.Duration read from a string like "30s"
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}
