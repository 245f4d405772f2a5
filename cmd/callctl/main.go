// Command callctl is a thin CLI over a running call engine: `listen`
// hosts a signaling + control-plane sidecar process (the server side);
// `call` and `status` are gRPC clients driving an already-running
// `listen` process, mirroring the teacher's cmd/servo (server) and
// cmd/testclient (client) split.
package main

import (
	"context"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/saorsa-labs/saorsa-webrtc-go/core/call"
	"github.com/saorsa-labs/saorsa-webrtc-go/core/service"
	"github.com/saorsa-labs/saorsa-webrtc-go/core/signaling"
	"github.com/saorsa-labs/saorsa-webrtc-go/ctrlplane"
	"github.com/saorsa-labs/saorsa-webrtc-go/internal/logging"
)

// Exit codes: 0 success, 1 usage error, 2 operation failure.
const (
	exitOK    = 0
	exitUsage = 1
	exitFail  = 2
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(exitUsage)
	}
	switch os.Args[1] {
	case "listen":
		os.Exit(runListen(os.Args[2:]))
	case "call":
		os.Exit(runCall(os.Args[2:]))
	case "status":
		os.Exit(runStatus(os.Args[2:]))
	default:
		usage()
		os.Exit(exitUsage)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: callctl listen [--auto-accept] [--signaling=:8090] [--grpc=:50051]")
	fmt.Fprintln(os.Stderr, "       callctl call <peer> [--audio] [--video] [--screen-share] [--target=localhost:50051]")
	fmt.Fprintln(os.Stderr, "       callctl status --call-id=<id> [--target=localhost:50051]")
}

func runListen(args []string) int {
	fs := flag.NewFlagSet("listen", flag.ContinueOnError)
	autoAccept := fs.Bool("auto-accept", false, "automatically accept every incoming call")
	signalingAddr := fs.String("signaling", ":8090", "address to serve the websocket signaling endpoint on")
	grpcAddr := fs.String("grpc", ":50051", "address to serve the control-plane gRPC endpoint on")
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}

	hub := signaling.NewWSHub()
	mux := http.NewServeMux()
	hub.HandleUpgrade(mux, "/signaling")
	go func() {
		if err := http.ListenAndServe(*signalingAddr, mux); err != nil {
			logging.L().Fatalw("signaling http server failed", "err", err)
		}
	}()

	svc := service.New[call.StringIdentity](service.DefaultConfig(), hub, func(s string) call.StringIdentity {
		return call.StringIdentity(s)
	})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := svc.Start(ctx); err != nil {
		logging.L().Errorw("service start failed", "err", err)
		return exitFail
	}
	defer svc.Stop()

	if *autoAccept {
		go autoAcceptLoop(ctx, svc)
	}

	lis, err := net.Listen("tcp", *grpcAddr)
	if err != nil {
		logging.L().Errorw("grpc listen failed", "err", err)
		return exitFail
	}
	grpcSrv := grpc.NewServer()
	ctrlplane.RegisterControlPlaneServer(grpcSrv, ctrlplane.NewServer(svc))
	logging.L().Infow("callctl listening", "signaling", *signalingAddr, "grpc", *grpcAddr, "auto_accept", *autoAccept)
	if err := grpcSrv.Serve(lis); err != nil {
		logging.L().Errorw("grpc serve failed", "err", err)
		return exitFail
	}
	return exitOK
}

func autoAcceptLoop(ctx context.Context, svc *service.Service[call.StringIdentity]) {
	events, cancel := svc.SubscribeEvents()
	defer cancel()
	for {
		select {
		case ev := <-events:
			if ev.Kind == call.EventIncomingCall {
				if err := svc.AcceptCall(ctx, ev.ID); err != nil {
					logging.L().Warnw("auto-accept failed", "call_id", ev.ID.String(), "err", err)
				}
			}
		case <-ctx.Done():
			return
		}
	}
}

func dial(target string) (*grpc.ClientConn, error) {
	return grpc.NewClient(target, grpc.WithTransportCredentials(insecure.NewCredentials()))
}

func runCall(args []string) int {
	fs := flag.NewFlagSet("call", flag.ContinueOnError)
	target := fs.String("target", "localhost:50051", "control-plane gRPC address")
	audio := fs.Bool("audio", false, "include audio")
	video := fs.Bool("video", false, "include video")
	screenShare := fs.Bool("screen-share", false, "include screen share")
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}
	if fs.NArg() < 1 {
		usage()
		return exitUsage
	}
	peer := fs.Arg(0)
	if !*audio && !*video && !*screenShare {
		*audio, *video = true, true
	}

	cc, err := dial(*target)
	if err != nil {
		fmt.Fprintln(os.Stderr, "dial failed:", err)
		return exitFail
	}
	defer cc.Close()

	client := ctrlplane.NewControlPlaneClient(cc)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	reply, err := client.InitiateCall(ctx, &ctrlplane.InitiateCallRequest{
		Peer: peer, Audio: *audio, Video: *video, ScreenShare: *screenShare,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, "InitiateCall RPC failed:", err)
		return exitFail
	}
	if reply.Err != "" {
		fmt.Fprintln(os.Stderr, "InitiateCall failed:", reply.Err)
		return exitFail
	}
	fmt.Println(reply.CallID)
	return exitOK
}

func runStatus(args []string) int {
	fs := flag.NewFlagSet("status", flag.ContinueOnError)
	target := fs.String("target", "localhost:50051", "control-plane gRPC address")
	callID := fs.String("call-id", "", "call id to query")
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}
	if *callID == "" {
		usage()
		return exitUsage
	}

	cc, err := dial(*target)
	if err != nil {
		fmt.Fprintln(os.Stderr, "dial failed:", err)
		return exitFail
	}
	defer cc.Close()

	client := ctrlplane.NewControlPlaneClient(cc)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	reply, err := client.GetCallStatus(ctx, &ctrlplane.StatusRequest{CallID: *callID})
	if err != nil {
		fmt.Fprintln(os.Stderr, "GetCallStatus RPC failed:", err)
		return exitFail
	}
	if !reply.Found {
		fmt.Println("not found")
		return exitFail
	}
	fmt.Printf("state=%s packet_loss=%.2f%% jitter=%.1fms rtt=%.1fms\n",
		reply.State, reply.PacketLossPercent, reply.JitterMs, reply.RoundTripMs)
	return exitOK
}
