package main

import (
	"flag"
	"log"
	"os"

	"github.com/robotalks/iolink/pkg/bridge/mqtt"
)

var (
	mqttURL = "mqtt://localhost:1883/"
	topic   = "#"
)

func init() {
	if val := os.Getenv("IOLINK_MQTT_URL"); val != "" {
		mqttURL = val
	}
	flag.StringVar(&mqttURL, "mqtt", mqttURL, "MQTT broker URL.")
	flag.StringVar(&topic, "topic", topic, "Topic pattern under the prefix, e.g. DEVICE/pin/+.")
}

func main() {
	flag.Parse()
	log.SetFlags(log.Lmicroseconds)

	ep, err := mqtt.ParseURL(mqttURL)
	if err != nil {
		log.Fatalln(err)
	}
	q := mqtt.NewQueue(ep.Options, ep.TopicPrefix)
	token := q.Connect()
	if token.Wait(); token.Error() != nil {
		log.Fatalln(token.Error())
	}
	defer q.Close()

	q.Sub(topic, func(topic string, payload []byte) {
		if len(payload) == 0 {
			log.Printf("%s: (cleared)", topic)
			return
		}
		msg, enc, err := mqtt.DecodeAny(payload)
		if err != nil {
			log.Printf("%s: bad payload: %v", topic, err)
			return
		}
		out, err := mqtt.EncodingJSON.Encode(msg)
		if err != nil {
			log.Printf("%s: %v", topic, err)
			return
		}
		log.Printf("%s: [%s] %s", topic, enc, out)
	})
	<-(chan struct{})(nil)
}
