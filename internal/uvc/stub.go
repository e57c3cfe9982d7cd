// +build !linux

package uvc

// OpenV4L2 is only available on Linux.
func OpenV4L2(prefix string, first int) Device {
	panic("V4L2 support requires linux")
}
