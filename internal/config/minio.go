package config

type Minio struct {
	Endpoint    string `env:"MINIO_ENDPOINT,required"`
	AccessKey   string `env:"MINIO_ACCESS_KEY,required"`
	SecretKey   string `env:"MINIO_SECRET_KEY,required"`
	Bucket      string `env:"MINIO_BUCKET,required"`
	UseSSL      bool   `env:"MINIO_USE_SSL" envDefault:"false"`
	ExternalURL string `env:"MINIO_EXTERNAL_URL,required"`
}
