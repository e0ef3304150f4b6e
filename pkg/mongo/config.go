package mongo

import "time"

// Config represents the MongoDB connection settings.
type Config struct {
	URI                    string        `env:"MONGODB_URI" envDefault:"mongodb://localhost:27017/todo-app"`
	Database               string        `env:"MONGODB_DATABASE" envDefault:"todo-app"`
	ConnectTimeout         time.Duration `env:"MONGODB_CONNECT_TIMEOUT" envDefault:"10s"`
	ServerSelectionTimeout time.Duration `env:"MONGODB_SERVER_SELECTION_TIMEOUT" envDefault:"5s"`
	SocketTimeout          time.Duration `env:"MONGODB_SOCKET_TIMEOUT" envDefault:"45s"`
	MaxPoolSize            uint64        `env:"MONGODB_MAX_POOL_SIZE" envDefault:"100"`
	RetryAttempts          int           `env:"MONGODB_RETRY_ATTEMPTS" envDefault:"3"`
	RetryInterval          time.Duration `env:"MONGODB_RETRY_INTERVAL" envDefault:"2s"`
}
