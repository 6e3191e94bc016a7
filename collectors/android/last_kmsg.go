package android

import "fmt"

// LastKmsgTarget captures the kernel log of the previous boot. Older kernels
// expose it as /proc/last_kmsg, newer ones through pstore.
type LastKmsgTarget struct{}

func NewLastKmsgTarget() *LastKmsgTarget { return &LastKmsgTarget{} }

func (t *LastKmsgTarget) Name() string { return "last_kmsg" }

func (t *LastKmsgTarget) FileName() string { return "last_kmsg.log" }

func (t *LastKmsgTarget) Command(dest string) string {
	q := shellQuote(dest)
	return fmt.Sprintf("if [ -e /proc/last_kmsg ]; then cat /proc/last_kmsg > %s; else cat /sys/fs/pstore/console-ramoops* > %s; fi", q, q)
}
