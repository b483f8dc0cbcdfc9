package exec

// Channel identifies one of the child's standard streams.
type Channel int

const (
	ChannelNone Channel = iota
	ChannelStdin
	ChannelStdout
	ChannelStderr
)

func (c Channel) String() string {
	switch c {
	case ChannelStdin:
		return "stdin"
	case ChannelStdout:
		return "stdout"
	case ChannelStderr:
		return "stderr"
	default:
		return "none"
	}
}
