package registry

import (
	"context"
	"fmt"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"
)

// KubeRegistry treats the nodes of the surrounding Kubernetes cluster
// as the candidate worker set. It only lists membership; offers and
// commits still go through the transport client.
type KubeRegistry struct {
	// Kubernetes official library client for
	// contacting API-server.
	clientset *kubernetes.Clientset
}

func NewKubeRegistry() (*KubeRegistry, error) {
	config, err := rest.InClusterConfig()
	if err != nil {
		log.Err(err).Send()

		return nil, fmt.Errorf("can't connect to kubernetes cluster")
	}

	clientset, err := kubernetes.NewForConfig(config)
	if err != nil {
		log.Err(err).Send()

		return nil, fmt.Errorf("could not init clients")
	}

	return &KubeRegistry{clientset: clientset}, nil
}

func (r *KubeRegistry) ListCandidateWorkers() ([]string, error) {
	nodes, err := r.clientset.CoreV1().Nodes().List(context.Background(), metav1.ListOptions{})
	if err != nil {
		log.Err(err).Send()

		return nil, fmt.Errorf("could not list cluster nodes")
	}

	workerIDs := make([]string, 0, len(nodes.Items))
	for _, node := range nodes.Items {
		workerIDs = append(workerIDs, node.Name)
	}

	return workerIDs, nil
}
