package request

// GroupUri 路径参数 /groups/:groupId 和 /group/:groupId
type GroupUri struct {
	GroupId int64 `uri:"groupId" binding:"required,gt=0"`
}
