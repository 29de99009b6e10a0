// Package config loads the settings that vary between deployments —
// backing-store connection parameters and strategy selectors — from
// environment variables via viper, the way the teacher loads its own
// runtime configuration.
package config

import (
	"time"

	"github.com/spf13/viper"

	"github.com/relcore/relcore/internal/kvstore"
	"github.com/relcore/relcore/internal/schema"
)

// Settings is the fully-resolved configuration for one Core instance.
type Settings struct {
	Store kvstore.Settings
	Core  schema.CoreConfiguration
	Retry RetrySettings
}

// RetrySettings bounds the Transactional insert strategy's retry budget.
type RetrySettings struct {
	MaxElapsedTime time.Duration
}

// Load reads Settings from environment variables prefixed RELCORE_, with
// the package defaults for anything unset.
func Load() Settings {
	v := viper.New()
	v.SetEnvPrefix("RELCORE")
	v.AutomaticEnv()

	v.SetDefault("host", "localhost")
	v.SetDefault("port", 6379)
	v.SetDefault("pool_size", 10)
	v.SetDefault("dial_timeout", 5*time.Second)
	v.SetDefault("retry_max_elapsed", 5*time.Second)
	v.SetDefault("insert_type", schema.InsertServerScript.String())
	v.SetDefault("delete_type", schema.DeleteServerScript.String())
	v.SetDefault("key_policy", schema.KeyPolicyJSON.String())
	v.SetDefault("list_records_type", schema.ListRecordsSet.String())

	return Settings{
		Store: kvstore.Settings{
			Host:        v.GetString("host"),
			Port:        v.GetInt("port"),
			PoolSize:    v.GetInt("pool_size"),
			DialTimeout: v.GetDuration("dial_timeout"),
		},
		Core: schema.CoreConfiguration{
			InsertType:      parseInsertType(v.GetString("insert_type")),
			DeleteType:      parseDeleteType(v.GetString("delete_type")),
			KeyPolicy:       parseKeyPolicy(v.GetString("key_policy")),
			ListRecordsType: parseListRecordsType(v.GetString("list_records_type")),
		},
		Retry: RetrySettings{MaxElapsedTime: v.GetDuration("retry_max_elapsed")},
	}
}

func parseInsertType(s string) schema.InsertType {
	switch s {
	case "transactional":
		return schema.InsertTransactional
	case "server_script":
		return schema.InsertServerScript
	default:
		return schema.InsertSimple
	}
}

func parseDeleteType(s string) schema.DeleteType {
	if s == "server_script" {
		return schema.DeleteServerScript
	}
	return schema.DeleteSimple
}

func parseKeyPolicy(s string) schema.KeyPolicyKind {
	if s == "hash" {
		return schema.KeyPolicyHash
	}
	return schema.KeyPolicyJSON
}

func parseListRecordsType(s string) schema.ListRecordsType {
	switch s {
	case "scan":
		return schema.ListRecordsScan
	case "keys":
		return schema.ListRecordsKeys
	default:
		return schema.ListRecordsSet
	}
}
