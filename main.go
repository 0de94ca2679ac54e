package main

import (
	"flag"
	"log"
	"os"
	"runtime"

	"GPU_present_chain/renderer"
	"GPU_present_chain/swapchain"
)

func init() {
	// Window and Vulkan calls have to stay on the main thread
	runtime.LockOSThread()
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.SetOutput(os.Stdout)
	log.Println("Starting present chain demo")
	log.Printf("Using GoLang: [%s]", runtime.Version())
}

func main() {
	cfg := renderer.DefaultConfig()
	flag.StringVar(&cfg.Window, "window", cfg.Window, "window backend, sdl or glfw")
	flag.IntVar(&cfg.Width, "width", cfg.Width, "initial window width")
	flag.IntVar(&cfg.Height, "height", cfg.Height, "initial window height")
	flag.IntVar(&cfg.FramesInFlight, "frames", cfg.FramesInFlight, "frames in flight")
	flag.BoolVar(&cfg.Validation, "validation", cfg.Validation, "enable the Khronos validation layer")
	flag.BoolVar(&cfg.RebuildOnSuboptimal, "rebuild-suboptimal", cfg.RebuildOnSuboptimal, "recreate the swap chain when it turns suboptimal")
	present := flag.String("present", swapchain.PresentModeName(cfg.PresentMode), "preferred present mode: immediate, mailbox, fifo, fifo-relaxed")
	count := flag.String("count", cfg.CountPolicy.String(), "image count policy: min, max, min+1")
	flag.Parse()

	var err error
	if cfg.PresentMode, err = swapchain.ParsePresentMode(*present); err != nil {
		log.Fatalf("Invalid -present: %v", err)
	}
	if cfg.CountPolicy, err = swapchain.ParseCountPolicy(*count); err != nil {
		log.Fatalf("Invalid -count: %v", err)
	}

	core, err := renderer.NewRenderCore(cfg)
	if err != nil {
		log.Panicf("Failed to create render core: %+v", err)
	}
	defer core.Destroy()
	if err := core.Loop(); err != nil {
		log.Panicf("Render loop failed: %+v", err)
	}
}
