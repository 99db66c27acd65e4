package simnet

// node.go holds the interface the network expects of the nodes it connects,
// and Host, the node implementation used by scenarios

// Node is an endpoint of the simulated network. It owns an upload stream
// (used when it sends) and a download stream (used when it receives)
type Node interface {
	UploadStream() TransmissionStream
	DownloadStream() TransmissionStream
	IsOnline() bool

	// NotifyReceive is called once for every message that reached the node
	NotifyReceive(sender Node, msg Message)
}

// SendStateListener is implemented by nodes that want to learn how their
// transmissions ended. Nodes that don't implement it are not told
type SendStateListener interface {
	NotifySuccess(receiver Node)
	NotifyFailure(receiver Node)
}

// onlineSwitch is implemented by the streams whose availability follows their host
type onlineSwitch interface {
	SetOnline(bool)
}

// HostStats counts what happened to the messages a host sent and received
type HostStats struct {
	Sent         int     `json:"sent" yaml:"sent"`
	Failed       int     `json:"failed" yaml:"failed"`
	Received     int     `json:"received" yaml:"received"`
	ReceivedBits float64 `json:"receivedbits" yaml:"receivedbits"`
}

// Host is a Node with a name, counters, and an optional receive callback
type Host struct {
	name      string
	upload    TransmissionStream
	download  TransmissionStream
	online    bool
	onReceive func(sender Node, msg Message)
	Stats     HostStats
}

// NewHost is a constructor. A bandwidth of zero gives the host an unlimited
// stream in that direction
func NewHost(name string, uploadBndwdth, downloadBndwdth float64, clock TimeProvider) *Host {
	host := new(Host)
	host.name = name
	host.upload = createStream(name+"_upload", uploadBndwdth, clock)
	host.download = createStream(name+"_download", downloadBndwdth, clock)
	host.online = true
	return host
}

// NewHostWithStreams builds a host around streams created elsewhere
func NewHostWithStreams(name string, upload, download TransmissionStream) *Host {
	return &Host{name: name, upload: upload, download: download, online: true}
}

func createStream(name string, bndwdth float64, clock TimeProvider) TransmissionStream {
	if bndwdth == 0 {
		return NewInstantStream(name, clock)
	}
	return NewSequentialStream(name, bndwdth, clock)
}

func (host *Host) String() string { return host.name }

// Name returns the host name
func (host *Host) Name() string { return host.name }

func (host *Host) UploadStream() TransmissionStream { return host.upload }

func (host *Host) DownloadStream() TransmissionStream { return host.download }

func (host *Host) IsOnline() bool { return host.online }

// SetOnline changes the availability of the host and of the streams it owns
func (host *Host) SetOnline(online bool) {
	host.online = online
	for _, strm := range []TransmissionStream{host.upload, host.download} {
		if sw, ok := strm.(onlineSwitch); ok {
			sw.SetOnline(online)
		}
	}
}

// OnReceive registers a callback run for every message the host receives
func (host *Host) OnReceive(fn func(sender Node, msg Message)) {
	host.onReceive = fn
}

func (host *Host) NotifyReceive(sender Node, msg Message) {
	host.Stats.Received += 1
	host.Stats.ReceivedBits += msg.Size()
	if host.onReceive != nil {
		host.onReceive(sender, msg)
	}
}

func (host *Host) NotifySuccess(receiver Node) {
	host.Stats.Sent += 1
}

func (host *Host) NotifyFailure(receiver Node) {
	host.Stats.Failed += 1
}
