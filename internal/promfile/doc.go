// Package promfile renders an analytics report in the Prometheus text
// exposition format, for use with the node_exporter textfile collector.
// Every value is a gauge labelled with the dex name.
package promfile
