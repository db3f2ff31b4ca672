package sqldb

import (
	"strconv"
	"strings"
)

var PlaceholderPrefixForDBType = map[string]byte{
	"mysql": '?',
	"pgsql": '$',
}

// Rebind rewrites '?' placeholders of query for the client's database type
func Rebind(c Client, query string) string {
	return ReplaceStaticPlaceholders(query, PlaceholderPrefixForDBType[c.GetConf().Type])
}

// ReplaceStaticPlaceholders numbers '?' placeholders with prefix, e.g. $1, $2.
// '??' is left untouched
func ReplaceStaticPlaceholders(sql string, prefix byte) string {
	if prefix == '?' || prefix == 0 {
		return sql
	}
	var builder strings.Builder
	builder.Grow(len(sql) + 8)
	cnt := 1
	i := 0
	for i < len(sql) {
		if sql[i] == '?' {
			if i+1 < len(sql) && sql[i+1] == '?' {
				builder.WriteString("??")
				i += 2
				continue
			}
			builder.WriteByte(prefix)
			builder.WriteString(strconv.Itoa(cnt))
			cnt++
		} else {
			builder.WriteByte(sql[i])
		}
		i++
	}
	return builder.String()
}
