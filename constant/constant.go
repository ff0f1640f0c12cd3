package constant

type Environment string

const (
	EnvironmentProduction Environment = "production"
	EnvironmentStaging    Environment = "staging"
	EnvironmentDevelop    Environment = "develop"
)

func (e Environment) String() string {
	return string(e)
}

type VideoEvent string

const (
	VideoEventUploaded  VideoEvent = "video.uploaded"
	VideoEventPublished VideoEvent = "video.published"
	VideoEventDeleted   VideoEvent = "video.deleted"
)

func (e VideoEvent) String() string {
	return string(e)
}
