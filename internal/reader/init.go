package reader

// NewDefaultRegistry builds a Registry with all four reader kinds
// registered (§3, §9 design note: explicit init wiring rather than the
// C++ original's static pre-main registration, since Go has no
// equivalent of a global constructor run before main).
func NewDefaultRegistry() *Registry {
	reg := NewRegistry()
	reg.Register(StatusMsgType, NewStatusReader)
	reg.Register(ImuMsgType, NewIMUReader)
	reg.Register(ImageMsgType, NewCameraReader)
	reg.Register(PointCloudMsgType, NewLidarReader)
	return reg
}
