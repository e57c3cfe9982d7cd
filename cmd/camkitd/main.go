// camkitd captures frames from a local video device through a camkit
// session and reports frame pacing. Useful for smoke-testing a device
// before wiring it into an application.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	flag "github.com/spf13/pflag"

	"github.com/lanikai/camkit"
	"github.com/lanikai/camkit/internal/uvc"
)

var (
	device = flag.String("device", "/dev/video", "video node prefix; subdevice N maps to <prefix>N")
	first  = flag.Int("first", 0, "node number of subdevice 0")
	width  = flag.Int("width", 640, "frame width, in pixels")
	height = flag.Int("height", 480, "frame height, in pixels")
	fps    = flag.Int("fps", 30, "frame rate, in frames per second")
	frames = flag.Int("frames", 120, "number of frame sets to capture")
)

// webcamInfo builds a single-subdevice catalog for a generic color webcam
// delivering packed YUYV. Multi-sensor devices ship their own catalogs.
func webcamInfo(width, height, fps int) *camkit.StaticInfo {
	info := &camkit.StaticInfo{Name: "generic webcam"}
	for s := range info.StreamSubdevices {
		info.StreamSubdevices[s] = -1
	}
	info.StreamSubdevices[camkit.StreamColor] = 0

	info.SubdeviceModes = []camkit.SubdeviceMode{{
		Subdevice: 0,
		Width:     width,
		Height:    height,
		Format:    camkit.FormatYUYV,
		FPS:       fps,
		Streams: []camkit.StreamMode{{
			Stream: camkit.StreamColor,
			Width:  width,
			Height: height,
			Format: camkit.FormatYUYV,
			FPS:    fps,
		}},
		Unpack: camkit.UnpackCopy,
	}}
	return info
}

// webcamCalibration reports nominal pinhole intrinsics; generic webcams
// carry no calibration in firmware.
type webcamCalibration struct {
	width, height int
}

func (c webcamCalibration) RetrieveCalibration() (camkit.CalibrationData, error) {
	data := camkit.CalibrationData{
		Intrinsics: []camkit.Intrinsics{{
			Width:          c.width,
			Height:         c.height,
			FocalLength:    [2]float32{float32(c.width), float32(c.width)},
			PrincipalPoint: [2]float32{float32(c.width) / 2, float32(c.height) / 2},
		}},
	}
	for s := range data.StreamPoses {
		data.StreamPoses[s] = camkit.IdentityPose()
	}
	return data, nil
}

func main() {
	flag.Parse()

	cam := camkit.New(
		uvc.OpenV4L2(*device, *first),
		webcamInfo(*width, *height, *fps),
		webcamCalibration{*width, *height},
	)
	defer cam.Close()

	if err := cam.EnableStream(camkit.StreamColor, *width, *height, camkit.FormatYUYV, *fps); err != nil {
		fail(err)
	}
	if err := cam.StartCapture(); err != nil {
		fail(err)
	}
	color.Green("capturing %dx%d @%d fps from %s%d", *width, *height, *fps, *device, *first)

	start := time.Now()
	for i := 0; i < *frames; i++ {
		cam.WaitAllStreams()

		number, err := cam.FrameNumber(camkit.StreamColor)
		if err != nil {
			fail(err)
		}
		data, err := cam.FrameData(camkit.StreamColor)
		if err != nil {
			fail(err)
		}
		fmt.Printf("frame set %3d: color #%d, %d bytes\n", i, number, len(data))
	}
	elapsed := time.Since(start)

	cam.StopCapture()
	color.Green("%d frame sets in %v (%.1f fps)",
		*frames, elapsed.Round(time.Millisecond),
		float64(*frames)/elapsed.Seconds())
}

func fail(err error) {
	color.Red("camkitd: %v", err)
	os.Exit(1)
}
