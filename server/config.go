package server

import (
	"gopkg.in/ini.v1"
)

type Config struct {
	Addr            string
	ReadBufferSize  int
	WriteBufferSize int
	PushInterval    int // 每隔多少步推送一次计算进度，0 表示不推送
	Namespace       string
}

func DefaultConfig() Config {
	return Config{
		Addr:            ":9000",
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		PushInterval:    500,
		Namespace:       "grainsim",
	}
}

func LoadConfig(file *ini.File) Config {
	def := DefaultConfig()
	section := file.Section("server")
	return Config{
		Addr:            section.Key("Addr").MustString(def.Addr),
		ReadBufferSize:  section.Key("ReadBufferSize").MustInt(def.ReadBufferSize),
		WriteBufferSize: section.Key("WriteBufferSize").MustInt(def.WriteBufferSize),
		PushInterval:    section.Key("PushInterval").MustInt(def.PushInterval),
		Namespace:       section.Key("Namespace").MustString(def.Namespace),
	}
}
