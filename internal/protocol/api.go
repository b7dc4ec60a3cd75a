package protocol

// API base paths, relative to a connection's base URI.
const (
	APIVersion    = "_api/version"
	APIDatabase   = "_api/database"
	APICollection = "_api/collection"
	APIDocument   = "_api/document"
	APIGraph      = "_api/gharial"
	APICursor     = "_api/cursor"
)

// ArangoDB error numbers the client and the emulator agree on.
const (
	ErrNumNoError                 = 0
	ErrNumBadParameter            = 10
	ErrNumUnauthorized            = 11
	ErrNumHTTPNotFound            = 404
	ErrNumConflict                = 1200
	ErrNumDocumentNotFound        = 1202
	ErrNumCollectionNotFound      = 1203
	ErrNumDocumentHandleBad       = 1205
	ErrNumDuplicateName           = 1207
	ErrNumIllegalName             = 1208
	ErrNumUniqueConstraint        = 1210
	ErrNumDocumentKeyBad          = 1221
	ErrNumDatabaseNotFound        = 1228
	ErrNumUseSystemDatabase       = 1230
	ErrNumEdgeAttributeMissing    = 1233
	ErrNumQueryParse              = 1501
	ErrNumQueryBindMissing        = 1551
	ErrNumCursorNotFound          = 1600
	ErrNumGraphCollectionMultiUse = 1920
	ErrNumGraphNotFound           = 1924
	ErrNumGraphDuplicate          = 1925
	ErrNumVertexColNotUsed        = 1926
	ErrNumNotInOrphanCollection   = 1928
	ErrNumEdgeColNotUsed          = 1930
)
