package kvdb

type Conf struct {
	Type   string `json:"type"` // redis
	Host   string `json:"host"`
	Port   int    `json:"port"`
	PW     string `json:"pw"`
	DB     int    `json:"db"`     // optional db number e.g. redis
	Prefix string `json:"prefix"` // key prefix of this app
	TTL    string `json:"ttl"`    // default expiration of archived documents e.g. "24h"
}
