package config

var (
	Version    string = "dev"
	CommitHash string = ""
)

// IsProduction 判断是否为生产环境
func IsProduction() bool {
	return Version == "release" && CommitHash != ""
}
