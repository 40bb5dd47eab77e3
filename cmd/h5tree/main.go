// Command h5tree inspects HDF5 files through the lazy entry tree.
package main

func main() {
	execute()
}
