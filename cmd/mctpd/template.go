package main

import (
	"fmt"
	"os"
)

const configTemplate = `# mctpd responder configuration
id = "mctpd.local"
host = "127.0.0.1"
port = 9090

# relative to this file
content_root = "content"

read_timeout = "15s"
write_timeout = "15s"
max_request_bytes = 8192

# admin_addr = "127.0.0.1:9091"
# cors_origins = ["http://localhost:3000"]

[routes]
"/" = "index.md"
"/hello" = "hello.md"
`

func writeTemplate(path string, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config already exists: %s", path)
		}
	}
	return os.WriteFile(path, []byte(configTemplate), 0o600)
}
