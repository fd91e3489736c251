package main

import (
	"bufio"
	"bytes"
	"fmt"
	"log"
	"os"
	"regexp"
	"time"

	"github.com/xdg-go/hstore"
	"go.mongodb.org/mongo-driver/bson"
)

func main() {
	if len(os.Args) < 2 {
		log.Fatal("usage: hstoreperf <file of hstore values, one per line>")
	}
	inputFile := os.Args[1]
	data, err := os.ReadFile(inputFile)
	if err != nil {
		log.Fatal(err)
	}

	var lines []string
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 64*1024*1024)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		log.Fatal(err)
	}

	benchLoad(lines, len(data))
	benchRegexp(lines, len(data))
	benchBSON(lines, len(data))
}

func benchLoad(lines []string, size int) {
	start := time.Now()
	for _, line := range lines {
		if _, err := hstore.Load(line); err != nil {
			log.Fatal(err)
		}
	}
	reportResult("hstore", size, time.Since(start))
}

var pairRE = regexp.MustCompile(`(?s)"((?:[^"\\]|\\.)*)"\s*=>\s*(?:NULL|"((?:[^"\\]|\\.)*)")(?:\s*,\s*|$)`)
var unescapeRE = regexp.MustCompile(`(?s)\\(.)`)

func benchRegexp(lines []string, size int) {
	start := time.Now()
	for _, line := range lines {
		h := make(map[string]*string)
		pos := 0
		for _, m := range pairRE.FindAllStringSubmatchIndex(line, -1) {
			if m[0] != pos {
				log.Fatalf("regexp: error parsing pair at byte %d", pos)
			}
			k := unescapeRE.ReplaceAllString(line[m[2]:m[3]], "$1")
			if m[4] < 0 {
				h[k] = nil
			} else {
				v := unescapeRE.ReplaceAllString(line[m[4]:m[5]], "$1")
				h[k] = &v
			}
			pos = m[1]
		}
		if pos < len(line) {
			log.Fatalf("regexp: unparsed data after byte %d", pos)
		}
	}
	reportResult("regexp", size, time.Since(start))
}

func benchBSON(lines []string, size int) {
	buf := make([]byte, 0, 256)
	start := time.Now()
	for _, line := range lines {
		h, err := hstore.Load(line)
		if err != nil {
			log.Fatal(err)
		}
		buf, err = hstore.AppendBSON(buf[0:0], h)
		if err != nil {
			log.Fatal(err)
		}
		_ = bson.Raw(buf)
	}
	reportResult("hstore->bson", size, time.Since(start))
}

func reportResult(label string, size int, elapsed time.Duration) {
	throughput := float64(size) / float64(elapsed.Microseconds())
	fmt.Printf("%15s %.2f MB/s\n", label, throughput)
}
